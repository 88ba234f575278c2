package tokenizer

import "testing"

// collectAll drains every non-EOF, non-Error token from a tokenizer.
func collectAll(t *Tokenizer) []Token {
	var toks []Token
	for {
		tok := t.Next()
		if tok.Type == EOF {
			return toks
		}
		if tok.Type == Error {
			continue
		}
		toks = append(toks, tok)
	}
}

func tokensEqual(a, b []Token) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Type != b[i].Type || a[i].Name != b[i].Name || a[i].Data != b[i].Data {
			return false
		}
		if len(a[i].Attrs) != len(b[i].Attrs) {
			return false
		}
		for j := range a[i].Attrs {
			if a[i].Attrs[j] != b[i].Attrs[j] {
				return false
			}
		}
	}
	return true
}

// feedInChunks pushes input into a streaming tokenizer split at the given
// byte offsets, run on its own goroutine (Next blocks the caller until
// chunks arrive), and returns the resulting tokens.
func feedInChunks(input string, splits []int) []Token {
	tok := NewStreaming(defaultOptions())

	done := make(chan []Token, 1)
	go func() {
		done <- collectAll(tok)
	}()

	start := 0
	for _, at := range splits {
		tok.Feed(input[start:at])
		start = at
	}
	tok.Feed(input[start:])
	tok.CloseInput()

	return <-done
}

func TestStreamingTokenizerMatchesWholeInput(t *testing.T) {
	const doc = `<!DOCTYPE html><html><head><title>Hi</title></head>` +
		`<body><p class="a">Hello, <b>world</b>!</p><!-- note --></body></html>`

	whole := NewWithOptions(doc, defaultOptions())
	want := collectAll(whole)

	splitSets := [][]int{
		{},
		{1},
		{10, 40, 80},
		make([]int, 0, len(doc)),
	}
	// Every single character boundary is also an arbitrary chunk split.
	for i := 1; i < len(doc); i++ {
		splitSets[3] = append(splitSets[3], i)
	}

	for i, splits := range splitSets {
		got := feedInChunks(doc, splits)
		if !tokensEqual(got, want) {
			t.Errorf("split set %d (%v): got %d tokens, want %d matching whole-input tokenization",
				i, splits, len(got), len(want))
		}
	}
}

func TestStreamingTokenizerBlocksUntilFed(t *testing.T) {
	tok := NewStreaming(defaultOptions())

	result := make(chan Token, 1)
	go func() {
		result <- tok.Next()
	}()

	select {
	case tok := <-result:
		t.Fatalf("Next() returned %v before any input was fed", tok.Type)
	default:
	}

	tok.Feed("<p>")
	got := <-result
	if got.Type != StartTag || got.Name != "p" {
		t.Errorf("Next() = {%v %q}, want {StartTag p}", got.Type, got.Name)
	}
}

func TestStreamingTokenizerSplitAcrossTagName(t *testing.T) {
	tok := NewStreaming(defaultOptions())
	done := make(chan []Token, 1)
	go func() { done <- collectAll(tok) }()

	for _, piece := range []string{"<scr", "ipt>", "var x", " = 1;", "</scri", "pt>"} {
		tok.Feed(piece)
	}
	tok.CloseInput()

	got := <-done
	if len(got) != 3 {
		t.Fatalf("expected 3 tokens, got %d: %v", len(got), got)
	}
	if got[0].Type != StartTag || got[0].Name != "script" {
		t.Errorf("got[0] = %v, want StartTag script", got[0])
	}
	if got[1].Type != Character || got[1].Data != "var x = 1;" {
		t.Errorf("got[1] = %v, want Character 'var x = 1;'", got[1])
	}
	if got[2].Type != EndTag || got[2].Name != "script" {
		t.Errorf("got[2] = %v, want EndTag script", got[2])
	}
}
