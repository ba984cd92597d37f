package vocab

// ScriptAnalysis is the result of the local difficulty path for one text.
type ScriptAnalysis struct {
	Title       string               `json:"title"`
	TotalWords  int                  `json:"totalWords"`
	UniqueWords int                  `json:"uniqueWords"`
	Categories  []DifficultyCategory `json:"categories"`
}

// Analyzer runs tokenize -> count -> normalize -> categorize with a pluggable
// tokenizer and lemmatizer. The zero value uses WordTokenizer and no lemmatizer.
type Analyzer struct {
	Tokenizer  Tokenizer
	Lemmatizer Lemmatizer
}

// Ranked returns the frequency table and ranked words for text.
func (a Analyzer) Ranked(text string) (*FrequencyTable, []WordFrequency) {
	tok := a.Tokenizer
	if tok == nil {
		tok = WordTokenizer{}
	}
	ft := Count(tok.Tokens(text))
	return ft, Normalize(ft, a.Lemmatizer)
}

// Analyze produces the local difficulty profile of text. Empty text yields six
// empty categories.
func (a Analyzer) Analyze(text, title string) ScriptAnalysis {
	ft, ranked := a.Ranked(text)
	cats := Categorize(ranked)
	if cats == nil {
		cats = EmptyCategories()
	}
	return ScriptAnalysis{
		Title:       title,
		TotalWords:  ft.Total(),
		UniqueWords: ft.Len(),
		Categories:  cats,
	}
}

// AnalyzeScript is Analyzer{}.Analyze for space-delimited text.
func AnalyzeScript(text, title string) ScriptAnalysis {
	return Analyzer{}.Analyze(text, title)
}
