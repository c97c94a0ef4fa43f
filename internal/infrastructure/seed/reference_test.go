package seed

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `
airlines:
  - code: ib
    name: Iberia
    origin_country: Spain
  - code: VY
    name: Vueling
airports:
  - iata_code: mad
    name: Adolfo Suárez Madrid-Barajas
    city: Madrid
    country: Spain
`

func TestReadReference(t *testing.T) {
	ref, err := ReadReference(strings.NewReader(sample))
	require.NoError(t, err)

	airlines := ref.AirlineEntities()
	require.Len(t, airlines, 2)
	assert.Equal(t, "IB", airlines[0].Code)
	assert.Equal(t, "Spain", airlines[0].OriginCountry)

	airports := ref.AirportEntities()
	require.Len(t, airports, 1)
	assert.Equal(t, "MAD", airports[0].IATACode)
	assert.Equal(t, "Madrid", airports[0].City)
}

func TestReadReferenceEmpty(t *testing.T) {
	ref, err := ReadReference(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, ref.Airlines)
	assert.Empty(t, ref.Airports)
}

func TestReadReferenceRejectsBadEntries(t *testing.T) {
	_, err := ReadReference(strings.NewReader("airlines:\n  - name: Nameless\n"))
	assert.ErrorContains(t, err, "no code")

	_, err = ReadReference(strings.NewReader("airports:\n  - iata_code: MADR\n"))
	assert.ErrorContains(t, err, "three letters")

	_, err = ReadReference(strings.NewReader("runways: []\n"))
	assert.Error(t, err)
}

func TestReadReferenceFileMissing(t *testing.T) {
	_, err := ReadReferenceFile("does-not-exist.yaml")
	assert.Error(t, err)
}
