// Package engine turns configured entities and their source tables into
// sync plans.
//
// A plan pairs the resolved records of one entity with the sync options
// that tell the executor which fields to diff, which related resources to
// embed and how to reconcile under mirror mode.
//
// Processing Flow:
//  1. Engine.Plan walks catalog.All in order (sites, groups, people,
//     devices, groupMembers) and skips entities without an inputPath.
//  2. The Input Reader loads the entity's table.
//  3. Process binds every catalog field to its settings and the table's
//     columns. Activation is fixed here, once per run.
//  4. Each row is resolved, fanned out for devices and group members,
//     tagged by the mirror policy and merged with include columns.
//
// Planning is synchronous and deterministic: rows are handled in source
// order and the only run-scoped state is the field list and the per-owner
// device ordinals.
package engine
