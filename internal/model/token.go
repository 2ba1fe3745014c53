package model

// Token identifies one of the virtual assets tracked by the ledger
type Token string

// The fixed token set. ACH is the achievement reward token and carries
// no market price.
const (
	TokenETH  Token = "vETH"
	TokenUSDC Token = "vUSDC"
	TokenDAI  Token = "vDAI"
	TokenACH  Token = "ACH"
)

// QuoteToken is the settlement currency for buy/sell operations
const QuoteToken = TokenUSDC

// AllTokens returns every token the ledger tracks
func AllTokens() []Token {
	return []Token{TokenETH, TokenUSDC, TokenDAI, TokenACH}
}

// ParseToken converts a request string into a Token
func ParseToken(s string) (Token, bool) {
	switch Token(s) {
	case TokenETH, TokenUSDC, TokenDAI, TokenACH:
		return Token(s), true
	}
	return "", false
}

// IsValid reports whether the token belongs to the fixed set
func (t Token) IsValid() bool {
	_, ok := ParseToken(string(t))
	return ok
}

// String implements fmt.Stringer
func (t Token) String() string {
	return string(t)
}
