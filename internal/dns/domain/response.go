package domain

// Answer is the outcome of one sub-resolution for a query: either a Record
// or the reason no record was produced. Exactly one of the two is set.
type Answer struct {
	Record Record
	Err    error
}

// RecordAnswer wraps a successfully rendered record.
func RecordAnswer(rr Record) Answer {
	return Answer{Record: rr}
}

// FailedAnswer wraps a sub-resolution failure.
func FailedAnswer(err error) Answer {
	return Answer{Err: err}
}

// OK reports whether the answer carries a record.
func (a Answer) OK() bool {
	return a.Err == nil
}

// Response is the ordered list of answers produced for one query line.
// An empty Response is valid: the host still gets END.
type Response struct {
	Answers []Answer
}

// Add appends a to the response.
func (r *Response) Add(a Answer) {
	r.Answers = append(r.Answers, a)
}

// Records returns only the successful records, in order.
func (r Response) Records() []Record {
	out := make([]Record, 0, len(r.Answers))
	for _, a := range r.Answers {
		if a.OK() {
			out = append(out, a.Record)
		}
	}
	return out
}

// Failures returns only the failures, in order.
func (r Response) Failures() []error {
	var out []error
	for _, a := range r.Answers {
		if !a.OK() {
			out = append(out, a.Err)
		}
	}
	return out
}
