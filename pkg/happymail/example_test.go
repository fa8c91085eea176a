package happymail_test

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/crimson-sun/happymail/pkg/happymail"
)

func Example() {
	dir, err := os.MkdirTemp("", "happymail")
	if err != nil {
		log.Fatal(err)
	}
	defer os.RemoveAll(dir)

	data := filepath.Join(dir, "train.tsv")
	rows := "Sentiment\tSentimentText\tLoggedIn\n" +
		"happy\tI love this!\ttrue\n" +
		"happy\twhat a wonderful day\tfalse\n" +
		"happy\tgreat work, love it\ttrue\n" +
		"sad\tthis makes me so sad\ttrue\n" +
		"sad\tlonely and sad today\tfalse\n" +
		"sad\tmy heart is broken\ttrue\n"
	if err := os.WriteFile(data, []byte(rows), 0o644); err != nil {
		log.Fatal(err)
	}

	res, err := happymail.Train(context.Background(),
		happymail.WithTrainData(data),
		happymail.WithModelPath(filepath.Join(dir, "MLModel.zip")),
	)
	if err != nil {
		log.Fatal(err)
	}

	m, err := happymail.Load(res.ModelPath)
	if err != nil {
		log.Fatal(err)
	}
	p, err := m.Predict("I love this!")
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(p.Label)
	fmt.Println(m.Labels())
	// Output:
	// happy
	// [happy sad]
}
