// Package retriever is the public entry point to the lexrag engine.
//
// It assembles the analysis pipeline, chunker, index builder, query
// expander and hybrid scorer from a single [Config] and returns an [Engine]
// ready to index documents and answer queries:
//
//	eng, err := retriever.New(nil) // defaults: Spanish, light stemmer
//	if err != nil {
//	    return err
//	}
//	_, err = eng.BuildIndex(ctx, []retriever.Document{
//	    {ID: "horario", Title: "Horario", Text: "Abrimos de lunes a viernes de 9am a 6pm."},
//	})
//	hits, err := eng.Search(ctx, "¿a qué hora abren?", 5, 0.15)
//
// The index is rebuilt lazily: any document change marks it stale and the
// next search builds a fresh snapshot. An Engine is safe for concurrent use.
package retriever
