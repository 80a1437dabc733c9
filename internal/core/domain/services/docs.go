// Package services provides domain services that orchestrate business operations
// across multiple domain entities in the cold-chain delivery system. It implements
// complex business workflows that don't naturally belong to a single aggregate root.
//
// The package includes:
//   - RoutePlanner: A domain service that rebuilds the delivery route from the
//     remaining stop sequence, asking a leg provider for road geometry
//   - RouteBoard: The serialized holder of the current route and vehicle
//   - SessionRegistry: In-memory registry of stability sessions with per-order
//     single-writer locking
//
// Domain services coordinate between aggregates, implementing business logic that
// spans multiple bounded contexts following Domain-Driven Design principles.
package services
