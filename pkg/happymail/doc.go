// Package happymail trains a text-sentiment classifier from a tab-separated
// file and loads the saved model back for scoring.
//
// Quick start:
//
//	res, err := happymail.Train(ctx, happymail.WithTrainData("data.tsv"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	m, err := happymail.Load(res.ModelPath)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	p, _ := m.Predict("I love this!")
//	fmt.Println(p.Label) // happy
//
// A loaded Model is immutable and safe for concurrent use.
package happymail
