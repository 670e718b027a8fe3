package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLightStemmer_Stem(t *testing.T) {
	s := NewLightStemmer()

	tests := []struct {
		token string
		want  string
	}{
		{"horarios", "horario"},
		{"horario", "horario"},
		{"atencion", "aten"},
		{"rapidamente", "rap"},
		{"promociones", "promo"},
		{"ciudades", "ciudad"},
		{"calidad", "cal"},
		{"famosos", "fam"},
		{"enviando", "envi"},
		{"comiendo", "com"},
		{"pagados", "pag"},
		{"lunes", "lun"},
		{"precios", "precio"},
		// remainder guard: stripping would leave a single rune
		{"mes", "mes"},
		{"as", "as"},
		{"es", "es"},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			assert.Equal(t, tt.want, s.Stem(tt.token))
		})
	}
}

func TestLightStemmer_Deterministic(t *testing.T) {
	s := NewLightStemmer()
	for _, w := range []string{"garantias", "devoluciones", "envios", "x"} {
		assert.Equal(t, s.Stem(w), s.Stem(w))
		assert.NotEmpty(t, s.Stem(w))
	}
}

func TestNewStemmer(t *testing.T) {
	t.Run("light is the default", func(t *testing.T) {
		s, err := NewStemmer("", "spanish")
		require.NoError(t, err)
		assert.IsType(t, &LightStemmer{}, s)
	})

	t.Run("none leaves tokens untouched", func(t *testing.T) {
		s, err := NewStemmer("none", "spanish")
		require.NoError(t, err)
		assert.Equal(t, "horarios", s.Stem("horarios"))
	})

	t.Run("snowball spanish", func(t *testing.T) {
		s, err := NewStemmer("snowball", "spanish")
		require.NoError(t, err)
		assert.Equal(t, s.Stem("horario"), s.Stem("horarios"))
	})

	t.Run("snowball rejects unknown language", func(t *testing.T) {
		_, err := NewStemmer("snowball", "klingon")
		assert.Error(t, err)
	})

	t.Run("unknown kind", func(t *testing.T) {
		_, err := NewStemmer("porter2000", "spanish")
		assert.Error(t, err)
	})
}

func TestAnalyzer_Terms(t *testing.T) {
	a := NewDefaultAnalyzer()

	got := a.Terms("Horarios de atención")

	assert.Equal(t, []string{"horario", "aten"}, got)
	assert.Equal(t, "horario", a.Stem("HORARIOS"))
	assert.Equal(t, "", a.Stem(""))
}

func TestAnalyzer_NilStemmer(t *testing.T) {
	a := NewAnalyzer(NewTokenizer(nil), nil)
	assert.Equal(t, []string{"horarios"}, a.Terms("horarios"))
}
