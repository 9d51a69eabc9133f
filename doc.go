/*
S3 Static Sync publishes a folder of static assets (web bundles, images, fonts) to an S3 bucket.

Every file is uploaded under a content-addressed name: the file stem followed by an md5 of the
file's fingerprint, e.g. app.js becomes app-01a5f7b30cd86a9b2d70f80d2649ceac.js. The fingerprint
covers the Cache-Control and Expires settings, the gzip flag and, depending on --sync-strategy,
the file content, size and modification time. Changing any of them yields a new name, which makes
the names safe to cache forever.

Files whose key already exists in the bucket are skipped, so running the tool again over an
unchanged tree uploads nothing. Existence is decided either from a single listing of the remote
folder kept in memory (default) or by a HEAD request per file (--low-memory-mode).

At the end of each run a JSON manifest maps every local path (relative to the parent of the synced
folder) to its remote key. Deployment pipelines read it to rewrite asset references.

Nothing is ever deleted from the bucket.
*/
package main
