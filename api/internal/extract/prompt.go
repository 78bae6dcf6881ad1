package extract

import (
	"fmt"
	"strings"

	"kyc-verifier/api/internal/domain"
	"kyc-verifier/api/internal/llm"
	"kyc-verifier/api/internal/util"
)

const promptGroup = "extract"

// DocumentSchema is the extraction schema shared by both strategies.
func DocumentSchema() llm.Schema {
	fields := make([]llm.Field, 0, len(domain.FieldSpecs))
	for _, f := range domain.FieldSpecs {
		fields = append(fields, llm.Field{Name: f.Key, Description: f.Description})
	}
	return llm.Schema{Name: "document_fields", Fields: fields}
}

const instructionTmpl = `You extract identity and address details from %s of a bank statement or a similar personal document issued anywhere in the world.
Such a document usually carries two addresses: the customer's address (normally printed next to or below the customer's name) and the address of the issuing bank or institution. Keep them apart and never mix their parts.
Extract the customer's first name and last name separately. For each address extract the street name, street number, postal code and city separately. Also extract the date the document was issued.
Return a JSON object with exactly these keys: %s.
If a detail cannot be found, return an empty string for that key.`

func defaultSystemPrompt(k Kind) string {
	source := "text recognised by OCR"
	if k == KindDirectVision {
		source = "an image"
	}
	return fmt.Sprintf(instructionTmpl, source, strings.Join(domain.FieldKeys(), ", "))
}

// systemPrompt honours <dir>/extract/<kind>.system.txt when present.
func systemPrompt(dir string, k Kind) string {
	return util.LoadPrompt(dir, promptGroup, string(k)+".system", defaultSystemPrompt(k))
}

func textRelayUserPrompt(text string) string {
	return `Extract the details from the text: """` + text + `"""`
}

const directVisionUserPrompt = "Extract the details from the attached document image."
