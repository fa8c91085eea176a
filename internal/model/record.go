package model

// Record is one row of the training file. Fields are bound by column
// position, not by header text.
type Record struct {
	Sentiment     string // label, column 0
	SentimentText string // free text to classify, column 1
	LoggedIn      string // column 2, loaded and carried but never featurized
}

// NumColumns is the number of positional columns a row must carry.
const NumColumns = 3
