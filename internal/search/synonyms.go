package search

import (
	"fmt"
	"os"
	"slices"
	"sort"
	"unicode"

	"gopkg.in/yaml.v3"

	"github.com/Aman-CERP/lexrag/internal/analysis"
)

// DefaultSynonyms maps customer-service concepts to the words people use
// for them in Spanish. Keys that are not plain words (precio_plural) only
// label a group and are never added to a query.
var DefaultSynonyms = map[string][]string{
	"precio":        {"costo", "tarifa", "valor", "vale", "cuanto", "cotizacion", "presupuesto"},
	"horario":       {"hora", "apertura", "atencion", "cierre", "dias", "sabado", "domingo"},
	"contacto":      {"whatsapp", "telefono", "llamar", "celular", "correo", "email", "direccion", "ubicacion", "soporte"},
	"envio":         {"entrega", "shipping", "despacho", "reparto", "mensajeria", "domicilio", "tracking", "seguimiento"},
	"garantia":      {"garantia", "cambios", "devolucion", "reembolso", "tyc", "terminos", "condiciones", "politica", "privacidad"},
	"producto":      {"servicio", "oferta", "plan", "paquete", "catalogo", "portafolio"},
	"ubicacion":     {"sede", "oficina", "tienda", "local"},
	"pago":          {"pagar", "medio", "metodo", "credito", "debito", "transferencia", "efecty", "paypal"},
	"pedido":        {"orden", "compra", "carrito", "checkout"},
	"soporte":       {"ayuda", "asistencia", "ticket", "incidencia", "reclamo", "pqrs"},
	"precio_plural": {"precios", "costos", "tarifas", "valores"},
	"promo":         {"descuento", "promocion", "oferta", "cupon", "beneficio"},
	"tiempo":        {"plazo", "demora", "tarda", "entrega", "estimado"},
	"calidad":       {"original", "certificado", "garantizado"},
	"ubicuidad":     {"ciudad", "pais", "zona", "cobertura"},
}

// SynonymTable answers symmetric synonym lookups on stems. A stem matching
// a group's key or any of its members expands to the whole group.
type SynonymTable struct {
	groups [][]string       // stemmed, deduplicated terms per group
	byTerm map[string][]int // folded or stemmed form -> group indexes
}

// NewSynonymTable stems every key and member of raw. Groups are ordered by
// key so lookups are deterministic.
func NewSynonymTable(raw map[string][]string, stem analysis.Stemmer) *SynonymTable {
	if stem == nil {
		stem = analysis.IdentityStemmer{}
	}

	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	t := &SynonymTable{byTerm: make(map[string][]int)}
	for _, key := range keys {
		gi := len(t.groups)
		var group []string

		addTerm := func(word string, indexOnly bool) {
			folded := analysis.Fold(word)
			if folded == "" {
				return
			}
			stemmed := stem.Stem(folded)
			t.link(folded, gi)
			t.link(stemmed, gi)
			if !indexOnly && !slices.Contains(group, stemmed) {
				group = append(group, stemmed)
			}
		}

		addTerm(key, !isWord(key))
		for _, member := range raw[key] {
			addTerm(member, false)
		}
		t.groups = append(t.groups, group)
	}
	return t
}

func (t *SynonymTable) link(term string, group int) {
	ids := t.byTerm[term]
	if len(ids) > 0 && ids[len(ids)-1] == group {
		return
	}
	t.byTerm[term] = append(ids, group)
}

// Lookup returns the stemmed terms of every group containing stem, without
// duplicates. It returns nil when stem belongs to no group.
func (t *SynonymTable) Lookup(stem string) []string {
	ids := t.byTerm[stem]
	if len(ids) == 0 {
		return nil
	}
	var out []string
	seen := make(map[string]struct{})
	for _, gi := range ids {
		for _, term := range t.groups[gi] {
			if _, ok := seen[term]; ok {
				continue
			}
			seen[term] = struct{}{}
			out = append(out, term)
		}
	}
	return out
}

// Len returns the number of groups.
func (t *SynonymTable) Len() int {
	return len(t.groups)
}

// MergeSynonyms returns base with extra's members appended to matching keys.
// Neither input is modified.
func MergeSynonyms(base, extra map[string][]string) map[string][]string {
	out := make(map[string][]string, len(base)+len(extra))
	for k, v := range base {
		out[k] = slices.Clone(v)
	}
	for k, v := range extra {
		out[k] = append(out[k], v...)
	}
	return out
}

// LoadSynonymsFile reads a YAML mapping of key to word list.
func LoadSynonymsFile(path string) (map[string][]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read synonyms file: %w", err)
	}
	var raw map[string][]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse synonyms file %s: %w", path, err)
	}
	return raw, nil
}

func isWord(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
