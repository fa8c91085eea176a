package model

// Column describes one positional column of the training data.
type Column struct {
	Name  string `json:"name" yaml:"name"`
	Index int    `json:"index" yaml:"index"`
	Type  string `json:"type" yaml:"type"`
}

// Schema is the shape of the data a model was trained on. It is saved with
// the model so a scoring process can bind rows the same way.
type Schema struct {
	Columns []Column `json:"columns" yaml:"columns"`
}

// TrainingSchema returns the schema of the sentiment training file.
func TrainingSchema() Schema {
	return Schema{Columns: []Column{
		{Name: "Sentiment", Index: 0, Type: "string"},
		{Name: "SentimentText", Index: 1, Type: "string"},
		{Name: "LoggedIn", Index: 2, Type: "string"},
	}}
}

// Column returns the column with the given name.
func (s Schema) Column(name string) (Column, bool) {
	for _, c := range s.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// Equal reports whether two schemas declare the same columns in the same order.
func (s Schema) Equal(o Schema) bool {
	if len(s.Columns) != len(o.Columns) {
		return false
	}
	for i := range s.Columns {
		if s.Columns[i] != o.Columns[i] {
			return false
		}
	}
	return true
}
