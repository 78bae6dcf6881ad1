package extract

import (
	"context"
	"encoding/json"

	"kyc-verifier/api/internal/llm"
	"kyc-verifier/api/internal/ocr"
)

type stubOracle struct {
	reply string
	err   error
	calls int
	last  llm.Request
}

func (s *stubOracle) Name() string { return "stub" }

func (s *stubOracle) Complete(_ context.Context, req llm.Request) (json.RawMessage, error) {
	s.calls++
	s.last = req
	if s.err != nil {
		return nil, s.err
	}
	return json.RawMessage(s.reply), nil
}

type stubRecognizer struct {
	text  string
	err   error
	calls int
	last  ocr.Input
}

func (s *stubRecognizer) Name() string { return "stub-ocr" }

func (s *stubRecognizer) Recognize(_ context.Context, in ocr.Input) (string, error) {
	s.calls++
	s.last = in
	return s.text, s.err
}

const validReply = `{
	"first_name": "John",
	"last_name": "Smith",
	"client_street_name": "Coventry Av",
	"client_street_number": "2450",
	"client_postal_code": "78521",
	"client_city": "Brownsville",
	"bank_street_name": "Main Street",
	"bank_street_number": "1",
	"bank_postal_code": "10001",
	"bank_city": "New York",
	"document_date": "2024-01-31"
}`
