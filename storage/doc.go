// Package storage archives meeting recordings to object storage.
//
// Backends register themselves through RegisterFactory and are selected by
// Config.Provider:
//
//   - storage/local: a directory on the local filesystem
//   - storage/s3: Amazon S3 and S3-compatible services (MinIO, R2)
//
// Import the backend package for its side effect:
//
//	import _ "github.com/kbukum/huddle/storage/s3"
//
// Configuration:
//
//	storage:
//	  enabled: true
//	  provider: "s3"
//	  bucket: "huddle-recordings"
//	  region: "us-east-1"
//	  prefix: "recordings/"
package storage
