// Package repository define las interfaces de almacenamiento del dominio.
//
// Son contratos independientes del backend: las implementaciones viven en
// internal/statecache (memory, redis) e internal/session (memory, redis,
// sqlite, postgres).
//
// Convenciones:
//   - Context siempre es el primer parámetro
//   - "No existe" y "expiró" son el mismo error: ErrNotFound
//   - Delete es idempotente
package repository
