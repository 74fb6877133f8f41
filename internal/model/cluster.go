package model

// Cluster is one theme identified over response embeddings. Its id is stable
// within a single clustering run only.
type Cluster struct {
	ID          string   `json:"id" bson:"id"`
	Label       string   `json:"label" bson:"label"`
	Count       int      `json:"count" bson:"count"`
	Sentiment   float64  `json:"sentiment" bson:"sentiment"`
	Keywords    []string `json:"keywords" bson:"keywords"`
	Examples    []string `json:"examples" bson:"examples"`
	ResponseIDs []string `json:"responseIds" bson:"responseIds"`
}

// ClusterResult is a hard partition of a subject's responses into themes.
// AdjustedClusters records the cluster count actually used, so callers can
// detect when the small-sample heuristic overrode the request.
type ClusterResult struct {
	Clusters          []Cluster `json:"clusters" bson:"clusters"`
	TotalResponses    int       `json:"totalResponses" bson:"totalResponses"`
	RequestedClusters int       `json:"requestedClusters" bson:"requestedClusters"`
	AdjustedClusters  int       `json:"adjustedClusters" bson:"adjustedClusters"`
}
