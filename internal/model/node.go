package model

// Node is one persisted child of a store namespace. Value holds raw JSON.
type Node struct {
	Namespace string `json:"namespace"`
	Key       string `json:"key"`
	Value     string `json:"value"`
	Mtime     int64  `json:"mtime"`
}
