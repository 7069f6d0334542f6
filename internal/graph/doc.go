// Package graph builds the action dependency graph of a project.
//
// # Why Graph Package Exists
//
// Actions depend on each other in three ways, and every consumer (the
// `graph` command, output resolution, validation of cycles) needs the same
// combined view:
//
//   - **Explicit:** an entry in `dependencies`, e.g. `build.api`.
//   - **Build:** the `build` key of a Deploy, Run or Test action.
//   - **Implicit:** a template reference such as
//     `${actions.build.api.outputs.deploymentImageId}`.
//
// The graph package merges them into one DAG (on top of the dag package),
// records why each edge exists, and rejects cycles.
//
// # Architecture: The Facade Pattern
//
//	┌─────────────────────────────────────┐
//	│           Graph Facade              │
//	│  (actions, edge reasons, ordering)  │
//	└──────────────────┬──────────────────┘
//	                   │
//	                   ▼
//	            ┌────────────┐
//	            │  dag.Graph │
//	            │ (structure)│
//	            └────────────┘
//
// Node IDs are action references in their string form (`build.api`).
//
// # Disabled Actions
//
// Disabled actions stay in the graph. Their static outputs (name, version,
// paths) remain available to dependents, so removing them would break
// templates that reference them.
package graph
