package main

import (
	"encoding/binary"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"
	"strings"

	"recyclegame/internal/app"
	"recyclegame/internal/config"
	"recyclegame/internal/detect"
	"recyclegame/internal/services/ai"
)

// readOutput loads a recorded detector output: a JSON array of numbers, or
// raw little-endian float32 values.
func readOutput(path string) ([]float32, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if strings.EqualFold(filepath.Ext(path), ".json") {
		var values []float32
		if err := json.Unmarshal(data, &values); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
		return values, nil
	}
	if len(data)%4 != 0 {
		return nil, fmt.Errorf("%s: %d bytes is not a whole number of float32 values", path, len(data))
	}
	values := make([]float32, len(data)/4)
	for i := range values {
		values[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return values, nil
}

func main() {
	cfg := config.Load()

	input := flag.String("input", "", "Recorded detector output (.json array or raw float32 .bin)")
	filterValue := flag.String("filter", detect.FilterAll, "Object filter: all, a label, or comma separated labels")
	imagePath := flag.String("image", "", "Optional frame to draw the detections on")
	outPath := flag.String("out", "detections.jpg", "Annotated image output path")
	flag.Parse()

	if *input == "" {
		flag.Usage()
		os.Exit(2)
	}

	output, err := readOutput(*input)
	if err != nil {
		log.Fatalf("Failed to read detector output: %v", err)
	}

	pipeline := app.NewPipeline(cfg)
	filter, err := detect.ParseFilter(*filterValue, pipeline.Decoder.Classes)
	if err != nil {
		log.Printf("⚠️  %v", err)
	}

	detections, err := pipeline.Process(output, filter)
	if err != nil {
		log.Fatalf("Failed to decode output (expected %d values, got %d): %v",
			pipeline.Decoder.ExpectedLen(), len(output), err)
	}

	fmt.Printf("Decoded %d detection(s) with filter %s\n", len(detections), filter)
	for i, d := range detections {
		fmt.Printf("%3d  %-16s %5.1f%%  x=%.3f y=%.3f w=%.3f h=%.3f\n",
			i, d.ClassName, d.Score*100, d.X, d.Y, d.Width, d.Height)
	}
	if counts := detect.CountByLabel(detections); len(counts) > 0 {
		fmt.Printf("\n📊 Per label:\n")
		for _, label := range pipeline.Decoder.Classes.Labels() {
			if n, ok := counts[label]; ok {
				fmt.Printf("   - %s: %d\n", label, n)
			}
		}
	}

	if *imagePath == "" {
		return
	}
	img, err := os.ReadFile(*imagePath)
	if err != nil {
		log.Fatalf("Failed to read image: %v", err)
	}
	annotated, err := ai.DrawDetections(img, detections)
	if err != nil {
		log.Fatalf("Failed to annotate image: %v", err)
	}
	if err := os.WriteFile(*outPath, annotated, 0644); err != nil {
		log.Fatalf("Failed to write %s: %v", *outPath, err)
	}
	fmt.Printf("✅ Annotated image written to %s\n", *outPath)
}
