package model

// Claim is a single factual assertion extracted from the input text.
// It has no identity beyond its text and position in the extracted list.
type Claim string

// Query is a claim rephrased for submission to the knowledge engine
type Query string

// String returns the claim text
func (c Claim) String() string {
	return string(c)
}

// String returns the query text
func (q Query) String() string {
	return string(q)
}

