package retriever

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/lexrag/internal/analysis"
	"github.com/Aman-CERP/lexrag/internal/corpus"
	lexerrors "github.com/Aman-CERP/lexrag/internal/errors"
)

var faqDocs = []Document{
	{ID: "horario", Title: "Horario", Text: "Nuestro horario es de lunes a viernes de 9am a 6pm."},
	{ID: "envios", Title: "Envíos", Text: "Hacemos envíos a todo el país por mensajería certificada."},
	{ID: "pagos", Title: "Pagos", Text: "Aceptamos tarjeta de crédito, débito y transferencia bancaria."},
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNew_NilConfigUsesDefaults(t *testing.T) {
	eng, err := New(nil, WithLogger(quietLogger()))

	require.NoError(t, err)
	assert.Equal(t, NewConfig(), eng.Settings())
	assert.Equal(t, 5, eng.Config().TopK)
	assert.InDelta(t, 0.15, eng.Config().Threshold, 1e-9)
}

func TestNew_InvalidConfig(t *testing.T) {
	cfg := NewConfig()
	cfg.Chunking.Size = 0

	_, err := New(cfg)

	require.Error(t, err)
	assert.Equal(t, lexerrors.ErrCodeConfigInvalid, lexerrors.GetCode(err))
}

func TestNew_MissingSynonymsFile(t *testing.T) {
	cfg := NewConfig()
	cfg.Analysis.SynonymsFile = filepath.Join(t.TempDir(), "missing.yaml")

	_, err := New(cfg)

	require.Error(t, err)
	assert.Equal(t, lexerrors.ErrCodeFileNotFound, lexerrors.GetCode(err))
}

func TestEngine_BuildIndexAndSearch(t *testing.T) {
	// Given: an engine indexed over three FAQ entries
	ctx := context.Background()
	eng, err := New(nil, WithLogger(quietLogger()))
	require.NoError(t, err)

	snap, err := eng.BuildIndex(ctx, faqDocs)
	require.NoError(t, err)
	assert.Equal(t, 3, snap.Len())

	// When: asking about opening hours without accents and in plural
	hits, err := eng.Search(ctx, "horarios de atencion", 3, 0)

	// Then: the opening hours entry ranks first
	require.NoError(t, err)
	require.NotEmpty(t, hits)
	assert.Equal(t, "horario", hits[0].Document.ID)
	for i := 1; i < len(hits); i++ {
		assert.GreaterOrEqual(t, hits[i-1].Score, hits[i].Score)
	}
}

func TestEngine_SearchDefault(t *testing.T) {
	ctx := context.Background()
	eng, err := New(nil, WithLogger(quietLogger()))
	require.NoError(t, err)
	_, err = eng.BuildIndex(ctx, faqDocs)
	require.NoError(t, err)

	hits, err := eng.SearchDefault(ctx, "envios")

	require.NoError(t, err)
	require.NotEmpty(t, hits)
	assert.Equal(t, "envios", hits[0].Document.ID)
	assert.LessOrEqual(t, len(hits), 5)
}

func TestEngine_SearchValidation(t *testing.T) {
	eng, err := New(nil, WithLogger(quietLogger()))
	require.NoError(t, err)

	_, err = eng.Search(context.Background(), "hola", 0, 0.15)
	assert.Equal(t, lexerrors.ErrCodeInvalidLimit, lexerrors.GetCode(err))

	_, err = eng.Search(context.Background(), "hola", 5, 2)
	assert.Equal(t, lexerrors.ErrCodeInvalidThreshold, lexerrors.GetCode(err))
}

func TestNew_WithSynonyms(t *testing.T) {
	// Given: a custom synonym group
	eng, err := New(nil,
		WithLogger(quietLogger()),
		WithSynonyms(map[string][]string{"reserva": {"cita", "turno"}}),
	)
	require.NoError(t, err)

	// When: expanding one member
	terms, err := eng.Expand(context.Background(), "turno")

	// Then: the rest of the group is added
	require.NoError(t, err)
	stem := analysis.NewLightStemmer()
	assert.Contains(t, terms, stem.Stem("reserva"))
	assert.Contains(t, terms, stem.Stem("cita"))
}

func TestNew_SynonymsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "synonyms.yaml")
	require.NoError(t, os.WriteFile(path, []byte("mascota:\n  - perro\n  - gato\n"), 0o644))
	cfg := NewConfig()
	cfg.Analysis.SynonymsFile = path

	eng, err := New(cfg, WithLogger(quietLogger()))
	require.NoError(t, err)

	terms, err := eng.Expand(context.Background(), "perro")
	require.NoError(t, err)
	assert.Contains(t, terms, analysis.NewLightStemmer().Stem("gato"))
}

func TestNew_ProfileSurvivesBuildIndex(t *testing.T) {
	// Given: a configured bot profile
	ctx := context.Background()
	cfg := NewConfig()
	cfg.Profile = Profile{Name: "Clínica", Goal: "Agendar citas de odontología y limpieza dental para pacientes nuevos"}

	eng, err := New(cfg, WithLogger(quietLogger()))
	require.NoError(t, err)

	// When: the document set is replaced
	_, err = eng.BuildIndex(ctx, faqDocs)
	require.NoError(t, err)

	// Then: the profile is still indexed and searchable
	st, err := eng.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, st.Documents)

	hits, err := eng.Search(ctx, "odontologia", 5, 0)
	require.NoError(t, err)
	require.NotEmpty(t, hits)
	assert.Equal(t, corpus.ProfileID, hits[0].Document.ID)
}

func TestEngine_MutationsMarkIndexStale(t *testing.T) {
	ctx := context.Background()
	eng, err := New(nil, WithLogger(quietLogger()))
	require.NoError(t, err)
	_, err = eng.BuildIndex(ctx, faqDocs)
	require.NoError(t, err)

	require.NoError(t, eng.Add(Document{ID: "mascotas", Text: "Se permiten mascotas pequeñas en la tienda."}))

	hits, err := eng.Search(ctx, "mascotas", 1, 0)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "mascotas", hits[0].Document.ID)

	assert.True(t, eng.Remove("mascotas"))
	st, err := eng.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, st.Documents)
}
