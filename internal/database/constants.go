package database

// FaceEmbeddingDim is the length of the face descriptors produced by the embedding service.
const FaceEmbeddingDim = 128

// DefaultEmbeddingModel is recorded with enrollments that do not name a model.
const DefaultEmbeddingModel = "face-api-128"

// HNSW index parameters for 128-dim face descriptors
const (
	// HNSWMaxNeighbors (M) is the maximum number of neighbors per node.
	// Higher values improve recall but increase memory and build time.
	HNSWMaxNeighbors = 16

	// HNSWEfSearch is the search candidate pool size.
	// Higher values improve recall but slow down search.
	HNSWEfSearch = 100

	// HNSWLookAlikeK is how many neighbours are checked when looking for look-alike enrollments.
	HNSWLookAlikeK = 16
)
