package quiz

// Result is the outcome of grading one attempt.
type Result struct {
	Correct  int
	Total    int
	Percent  float64
	Missed   []int
	Answered int
}

// Score grades answers keyed by question id. Unanswered questions count as missed.
func Score(doc *Document, answers map[int]Option) Result {
	r := Result{Total: len(doc.Questions)}
	for _, q := range doc.Questions {
		a, ok := answers[q.ID]
		if ok {
			r.Answered++
		}
		if ok && a == q.Correct {
			r.Correct++
			continue
		}
		r.Missed = append(r.Missed, q.ID)
	}
	if r.Total > 0 {
		r.Percent = float64(r.Correct) * 100 / float64(r.Total)
	}
	return r
}
