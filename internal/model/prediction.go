package model

// PredictedField identifies which transaction field a prediction fills.
type PredictedField string

// Fields the predictor can fill.
const (
	FieldDebitAccount  PredictedField = "debit_account"
	FieldCreditAccount PredictedField = "credit_account"
	FieldReference     PredictedField = "reference"
)

// FieldPrediction is a single predicted value for one empty field,
// together with the confidence of the pattern that produced it.
type FieldPrediction struct {
	Field      PredictedField `json:"field"`
	Value      string         `json:"value"`
	PatternKey string         `json:"pattern_key"`
	Confidence float64        `json:"confidence"`
}

// PredictionResult pairs a transaction with the predictions made for its
// empty fields. Results are ephemeral: they are returned to the caller
// and never persisted.
type PredictionResult struct {
	Transaction Transaction       `json:"transaction"`
	Predictions []FieldPrediction `json:"predictions"`
}

// Prediction returns the prediction for the given field, if any.
func (r *PredictionResult) Prediction(field PredictedField) (FieldPrediction, bool) {
	for _, p := range r.Predictions {
		if p.Field == field {
			return p, true
		}
	}
	return FieldPrediction{}, false
}
