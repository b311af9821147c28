// Package model describes the base objects manipulated by modelvc.
//
// The package exposes a model for version-controlled model artifacts.
//
// The object model for modelvc is composed of:
//
//  Projects:
//    A project holds a set of named model artifacts ("entities") with a
//    unified lifecycle. Every project owns a main development line.
//
//  Entities:
//    An entity is a named, classified model artifact. Entities are
//    addressed by a "::"-separated path and carry an opaque structured
//    content document.
//
//  Revisions:
//    A revision is an immutable point in time snapshot of a project's
//    entities. This is analogous to a commit in git.
//
//  Workspaces:
//    A workspace is a mutable staging line of entity changes rooted at
//    a source revision, analogous to a private branch.
//
//  Patches:
//    A patch is an independent release line rooted at a historical
//    version, with its own workspaces, revisions and versions.
//
//  Versions:
//    A version is a write-once release tag (major.minor.patch) bound to
//    a revision, analogous to tags in git.
package model
