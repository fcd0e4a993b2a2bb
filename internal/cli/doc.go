// Package cli implements the agrishield command line: account registration
// and login against the local credential store, image classification with
// the model ensemble, and serve-model, which exposes one model as a gRPC
// scorer for a remote server.
package cli
