package scanner

import "testing"

func TestClassify(t *testing.T) {
	c := NewClassifier([]string{"nul", "match nul", "n", "draw"})

	tests := []struct {
		token string
		kind  Kind
		price float64
	}{
		{"1,50", KindPrice, 1.5},
		{"1.50", KindPrice, 1.5},
		{"1,01", KindPrice, 1.01},
		{"99,99", KindPrice, 99.99},
		{"1,00", KindFiller, 0},
		{"0,95", KindFiller, 0},
		{"100,00", KindFiller, 0},
		{"1,5", KindFiller, 0},
		{"Nul", KindDraw, 0},
		{"Match nul", KindDraw, 0},
		{"N", KindDraw, 0},
		{"x", KindFiller, 0},
		{"1", KindFiller, 0},
		{"12", KindFiller, 0},
		{"347", KindFiller, 0},
		{"45%", KindFiller, 0},
		{"20h45", KindFiller, 0},
		{"18:30", KindFiller, 0},
		{"12/10", KindFiller, 0},
		{"12 décembre", KindFiller, 0},
		{"12 DÉCEMBRE 20h45", KindFiller, 0},
		{"Sam. 12 oct.", KindFiller, 0},
		{"Demain 21:00", KindFiller, 0},
		{"Paris SG", KindName, 0},
		{"Marseille", KindName, 0},
		{"Lens", KindName, 0},
		{"Djokovic N.", KindName, 0},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			kind, price := c.Classify(tt.token)
			if kind != tt.kind {
				t.Fatalf("Classify(%q) kind = %s, want %s", tt.token, kind, tt.kind)
			}
			if price != tt.price {
				t.Errorf("Classify(%q) price = %v, want %v", tt.token, price, tt.price)
			}
		})
	}
}

func TestParsePrice_BandRejection(t *testing.T) {
	for _, tok := range []string{"0,01", "0,99", "1,00", "0.50"} {
		if v, ok := ParsePrice(tok); ok {
			t.Errorf("ParsePrice(%q) = %v, want rejection", tok, v)
		}
	}
	for _, tok := range []string{"1,01", "2.35", "50,00", "99.99"} {
		if _, ok := ParsePrice(tok); !ok {
			t.Errorf("ParsePrice(%q) rejected, want accepted", tok)
		}
	}
}

func TestTokenize(t *testing.T) {
	raw := "  Ligue 1 \r\n\r\nParis SG\n\t1,45\n   \nNul\n"
	got := Tokenize(raw)
	want := []string{"Ligue 1", "Paris SG", "1,45", "Nul"}
	if len(got) != len(want) {
		t.Fatalf("Tokenize() = %q, want %q", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Tokenize()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
