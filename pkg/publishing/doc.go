// Package publishing provides a multi-tenant content publishing library.
//
// Applications (tenants) own independent collections of posts, articles and
// videos that move through a DRAFT/PUBLISHED lifecycle. The package exposes a
// single Service interface that orchestrates tenant authorization, publish
// timestamp resolution, paging and media upload over pluggable repository and
// storage ports. Implementations of the ports live in subpackages (repo/memory,
// repo/postgres, storage/memory, storage/s3, security).
//
// Lifecycle rules
//
// PublishedAt is set when an item first enters PUBLISHED, kept unchanged while
// it stays PUBLISHED and cleared when it leaves PUBLISHED. A round trip through
// any other status produces a fresh PublishedAt on the next publish.
//
// Tenant scope
//
// Every mutating call receives the acting admin's allowed application ids and
// is rejected with a forbidden error before any work is done when the target
// application is not in that set. Reads by slug and listings are not gated;
// callers serving anonymous traffic must hide non-published items themselves.
package publishing
