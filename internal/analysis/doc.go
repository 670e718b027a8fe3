// Package analysis turns raw text into index terms.
//
// The pipeline is: optional markup cleanup (StripMarkup), accent and case
// folding (Fold), tokenization with stop-word and short-token removal
// (Tokenizer), and suffix stripping (Stemmer). Analyzer chains the last
// three so indexing and querying always produce comparable stems.
//
// Every step is pure and safe for concurrent use.
package analysis
