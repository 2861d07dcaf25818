package main

import (
	"math/rand"
	"reflect"
	"strings"
	"testing"
)

func TestGenerateRecords(t *testing.T) {
	records := generateRecords(rand.New(rand.NewSource(1)), 500)

	if len(records) != 501 {
		t.Fatalf("Expected header plus 500 rows, got %d", len(records))
	}
	if !reflect.DeepEqual(records[0], header) {
		t.Errorf("Unexpected header %v", records[0])
	}

	counts := map[string]int{}
	for _, r := range records[1:] {
		if len(r) != len(header) {
			t.Fatalf("Row has %d fields, want %d", len(r), len(header))
		}
		counts[r[3]]++
	}
	for _, s := range []string{"operating", "closed"} {
		if counts[s] == 0 {
			t.Errorf("Expected some %s rows, got none", s)
		}
	}
}

func TestGenerateRecords_Deterministic(t *testing.T) {
	a := generateRecords(rand.New(rand.NewSource(42)), 50)
	b := generateRecords(rand.New(rand.NewSource(42)), 50)
	if !reflect.DeepEqual(a, b) {
		t.Error("Same seed must generate the same rows")
	}
}

func TestFormatAmount(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	for i := 0; i < 20; i++ {
		got := formatAmount(rng, 1750000)
		if strings.TrimSpace(got) == "-" {
			continue
		}
		if got != " 1,750,000 " {
			t.Errorf("Expected \" 1,750,000 \", got %q", got)
		}
	}
}
