// Command gen-rows writes a sample Avro rows file that icetour append --from accepts.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/TFMV/icetour/importer"
	"github.com/TFMV/icetour/tableops"
)

func main() {
	output := flag.String("o", "testdata/rows.avro", "output file")
	count := flag.Int("n", 10, "number of rows to generate")
	start := flag.Int64("start-id", 100, "id of the first row")
	flag.Parse()

	if *count <= 0 {
		log.Fatalf("row count must be positive, got %d", *count)
	}

	if dir := filepath.Dir(*output); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Fatalf("Failed to create output directory: %v", err)
		}
	}

	now := tableops.Now()
	rows := make([]tableops.Row, 0, *count)
	for i := 0; i < *count; i++ {
		id := *start + int64(i)
		rows = append(rows, tableops.NewRow(id, fmt.Sprintf("Generated %d", id), now.Add(time.Duration(i)*time.Second)))
	}

	file, err := os.Create(*output)
	if err != nil {
		log.Fatalf("Failed to create output file: %v", err)
	}

	if err := importer.WriteAvroRows(file, rows); err != nil {
		file.Close()
		log.Fatalf("Failed to write rows: %v", err)
	}
	if err := file.Close(); err != nil {
		log.Fatalf("Failed to close output file: %v", err)
	}

	fmt.Printf("Wrote %d rows to %s\n", len(rows), *output)
}
