package dataset

import "errors"

// ErrEmptyDataset is returned when a resolved dataset contains zero samples.
var ErrEmptyDataset = errors.New("empty dataset")

// ErrNoSamples is the detection-failure message: neither a
// conversational nor single-turn shape could be determined from the JSON.
var ErrNoSamples = errors.New("no prompts or conversations in dataset")

// ErrMalformedDataset is returned when the dataset JSON does not decode to
// a top-level list.
var ErrMalformedDataset = errors.New("malformed dataset: expected a JSON list")
