package main

import (
	"flag"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
)

/*generates paragraph corpora in the shape the search pipeline consumes*/

var (
	ParagraphCount = flag.Int("paragraphs", 1000, "Number of paragraphs to generate")
	NeedleEvery    = flag.Int("needle_every", 50, "Plant the word \"needle\" in every Nth paragraph (0 disables)")
	OutputPath     = flag.String("output", "var/corpus.txt", "Output corpus file path")
)

var Words = []string{
	"stream", "record", "buffer", "offset", "window",
	"worker", "chunk", "carry", "byte", "line",
	"search", "match", "pattern", "input", "output",
}

func GenerateLine() string {
	n := 4 + rand.IntN(8)
	parts := make([]string, n)
	for i := range parts {
		parts[i] = Words[rand.IntN(len(Words))]
	}
	return strings.Join(parts, " ") + "\n"
}

func generateParagraph(plantNeedle bool) string {
	var sb strings.Builder
	for range 1 + rand.IntN(5) {
		sb.WriteString(GenerateLine())
	}
	if plantNeedle {
		sb.WriteString("this one holds the needle\n")
	}
	sb.WriteString("\n")
	return sb.String()
}

func main() {
	flag.Parse()

	// open file for writing
	if err := os.MkdirAll(filepath.Dir(*OutputPath), 0755); err != nil {
		panic(err)
	}
	file, err := os.Create(*OutputPath)
	if err != nil {
		panic(err)
	}
	defer file.Close()

	// generate data
	for i := 0; i < *ParagraphCount; i++ {
		plant := *NeedleEvery > 0 && i%*NeedleEvery == 0
		if _, err := file.WriteString(generateParagraph(plant)); err != nil {
			panic(err)
		}
	}
}
