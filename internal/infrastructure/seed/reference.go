// Package seed reads airline and airport reference data from YAML
package seed

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"flight-queue-service/internal/domain/entity"

	"gopkg.in/yaml.v3"
)

// Reference is the document shape of a reference seed file:
//
//	airlines:
//	  - code: IB
//	    name: Iberia
//	    origin_country: Spain
//	airports:
//	  - iata_code: MAD
//	    name: Adolfo Suárez Madrid-Barajas
//	    city: Madrid
//	    country: Spain
type Reference struct {
	Airlines []Airline `yaml:"airlines"`
	Airports []Airport `yaml:"airports"`
}

type Airline struct {
	Code          string `yaml:"code"`
	Name          string `yaml:"name"`
	OriginCountry string `yaml:"origin_country"`
	LogoURL       string `yaml:"logo_url"`
}

type Airport struct {
	IATACode string `yaml:"iata_code"`
	Name     string `yaml:"name"`
	City     string `yaml:"city"`
	Country  string `yaml:"country"`
}

// ReadReference decodes a seed document. Codes are upper-cased and entries
// without a code are rejected.
func ReadReference(r io.Reader) (*Reference, error) {
	var ref Reference
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&ref); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode reference seed: %w", err)
	}

	for i := range ref.Airlines {
		ref.Airlines[i].Code = strings.ToUpper(strings.TrimSpace(ref.Airlines[i].Code))
		if ref.Airlines[i].Code == "" {
			return nil, fmt.Errorf("airline %d has no code", i)
		}
	}
	for i := range ref.Airports {
		ref.Airports[i].IATACode = strings.ToUpper(strings.TrimSpace(ref.Airports[i].IATACode))
		if len(ref.Airports[i].IATACode) != 3 {
			return nil, fmt.Errorf("airport %d: iata_code %q must be three letters", i, ref.Airports[i].IATACode)
		}
	}
	return &ref, nil
}

// ReadReferenceFile opens path and decodes it with ReadReference
func ReadReferenceFile(path string) (*Reference, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadReference(f)
}

// AirlineEntities converts the seeded airlines to domain entities
func (r *Reference) AirlineEntities() []entity.Airline {
	out := make([]entity.Airline, 0, len(r.Airlines))
	for _, a := range r.Airlines {
		out = append(out, entity.Airline{
			Code:          a.Code,
			Name:          a.Name,
			OriginCountry: a.OriginCountry,
			LogoURL:       a.LogoURL,
		})
	}
	return out
}

// AirportEntities converts the seeded airports to domain entities
func (r *Reference) AirportEntities() []entity.Airport {
	out := make([]entity.Airport, 0, len(r.Airports))
	for _, a := range r.Airports {
		out = append(out, entity.Airport{
			IATACode: a.IATACode,
			Name:     a.Name,
			City:     a.City,
			Country:  a.Country,
		})
	}
	return out
}
