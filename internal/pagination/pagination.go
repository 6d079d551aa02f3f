// Package pagination builds the page strip shown under the image viewer.
package pagination

const (
	estimatedChipWidth  = 38
	stripPadding        = 28
	minVisiblePages     = 7
	defaultVisiblePages = 11
)

// TokenType distinguishes page buttons from ellipses
type TokenType string

const (
	TokenPage     TokenType = "page"
	TokenEllipsis TokenType = "ellipsis"
)

// Token is one element of the page strip. Page is one based; Key is
// "left" or "right" for ellipses.
type Token struct {
	Type TokenType `json:"type"`
	Page int       `json:"page,omitempty"`
	Key  string    `json:"key,omitempty"`
}

// EstimateMaxVisiblePages guesses how many page chips fit in width pixels.
// An unknown width (<= 0) shows up to 11 pages.
func EstimateMaxVisiblePages(total, width int) int {
	if total <= 0 {
		return 0
	}
	if width <= 0 {
		return min(total, defaultVisiblePages)
	}
	capacity := max(width-stripPadding, 0) / estimatedChipWidth
	return max(minVisiblePages, min(total, capacity))
}

// BuildPageTokens lays out the strip for a zero-based current page: first
// page, an interior window centred on current, last page, with ellipses
// where pages are skipped.
func BuildPageTokens(total, current, maxVisible int) []Token {
	if total <= 0 {
		return []Token{}
	}
	if total <= maxVisible {
		tokens := make([]Token, total)
		for i := range total {
			tokens[i] = Token{Type: TokenPage, Page: i + 1}
		}
		return tokens
	}

	currentPage := current + 1
	interior := max(maxVisible-2, 1)
	start := max(2, currentPage-(interior-1)/2)
	end := min(total-1, start+interior-1)
	start = max(2, end-interior+1)

	tokens := []Token{{Type: TokenPage, Page: 1}}
	if start > 2 {
		tokens = append(tokens, Token{Type: TokenEllipsis, Key: "left"})
	}
	for page := start; page <= end; page++ {
		tokens = append(tokens, Token{Type: TokenPage, Page: page})
	}
	if end < total-1 {
		tokens = append(tokens, Token{Type: TokenEllipsis, Key: "right"})
	}
	return append(tokens, Token{Type: TokenPage, Page: total})
}
