package parser

import (
	"testing"

	"github.com/fredcamaral/deckflow/internal/test/builders"
)

const benchmarkDeck = `# Introduction

Welcome to this benchmark presentation with **bold** and *italic* text.

<!-- notes -->
This is a speaker note
<!-- /notes -->

---

## Main Content

- **Fast:** renders in one pass
- **Safe:** never fails on bad input

And a code block:
` + "```go\nfunc main() {\n    fmt.Println(\"Hello, World!\")\n}\n```" + `

---

### Gallery

![one](one.png)
![two](two.png)
![three](three.png)

---

### Complex Slide

| Header 1 | Header 2 |
|----------|----------|
| Cell 1   | Cell 2   |

> This is a blockquote with some content

---

## Conclusion

Thank you for watching!`

func BenchmarkPipeline_Parse(b *testing.B) {
	pipeline := newTestPipeline()
	ctx := b.Context()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := pipeline.Parse(ctx, benchmarkDeck, nil); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkPipeline_ParseParallel(b *testing.B) {
	pipeline := newTestPipeline(WithWorkers(4))
	ctx := b.Context()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := pipeline.Parse(ctx, benchmarkDeck, nil); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkPipeline_LargeDeckWithRules(b *testing.B) {
	pipeline := newTestPipeline(WithWorkers(4))
	deck := builders.LargeDeck(100)
	rules := builders.StandardRules()
	ctx := b.Context()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := pipeline.Parse(ctx, deck, rules); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkSplitSlides(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_ = SplitSlides(benchmarkDeck)
	}
}
