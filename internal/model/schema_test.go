package model

import "testing"

func TestTrainingSchemaOrder(t *testing.T) {
	s := TrainingSchema()
	want := []string{"Sentiment", "SentimentText", "LoggedIn"}
	if len(s.Columns) != len(want) {
		t.Fatalf("expected %d columns, got %d", len(want), len(s.Columns))
	}
	for i, name := range want {
		if s.Columns[i].Name != name || s.Columns[i].Index != i {
			t.Errorf("column %d: got %+v, want name %q index %d", i, s.Columns[i], name, i)
		}
	}
	if len(s.Columns) != NumColumns {
		t.Errorf("NumColumns = %d, schema has %d", NumColumns, len(s.Columns))
	}
}

func TestSchemaColumnLookup(t *testing.T) {
	s := TrainingSchema()
	c, ok := s.Column("LoggedIn")
	if !ok || c.Index != 2 {
		t.Fatalf("expected LoggedIn at index 2, got %+v ok=%v", c, ok)
	}
	if _, ok := s.Column("Missing"); ok {
		t.Fatal("expected lookup of unknown column to fail")
	}
}

func TestSchemaEqual(t *testing.T) {
	a := TrainingSchema()
	b := TrainingSchema()
	if !a.Equal(b) {
		t.Fatal("expected identical schemas to be equal")
	}
	b.Columns[2].Type = "bool"
	if a.Equal(b) {
		t.Fatal("expected schemas with different column types to differ")
	}
}
