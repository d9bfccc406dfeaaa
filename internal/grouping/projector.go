package grouping

import "strings"

// Project converts regions into boxes and label text.
//
// Boxes keep the order of regions. Each label is the member tokens' text in
// reading order, joined by single spaces. tokens must be indexable by ID, which
// holds for the output of Normalize.
func Project(regions []Region, tokens []Token) ([]Box, []string) {
	boxes := make([]Box, len(regions))
	labels := make([]string, len(regions))
	for i, r := range regions {
		boxes[i] = r.Box
		labels[i] = Label(r, tokens)
	}
	return boxes, labels
}

// Label joins the text of r's member tokens.
func Label(r Region, tokens []Token) string {
	words := make([]string, 0, len(r.Members))
	for _, id := range r.Members {
		if id >= 0 && id < len(tokens) {
			words = append(words, tokens[id].Text)
		}
	}
	return strings.Join(words, " ")
}
