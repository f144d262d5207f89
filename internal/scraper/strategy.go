package scraper

import "github.com/PuerkitoBio/goquery"

// Strategy is one way of extracting a T from a document. Ok reports whether
// it produced a usable value.
type Strategy[T any] struct {
	Name string
	Run  func(doc *goquery.Document) (T, bool)
}

// FirstMatch tries strategies in order and returns the first success along
// with the name of the strategy that produced it.
func FirstMatch[T any](doc *goquery.Document, strategies ...Strategy[T]) (T, string, bool) {
	for _, s := range strategies {
		if v, ok := s.Run(doc); ok {
			return v, s.Name, true
		}
	}
	var zero T
	return zero, "", false
}
