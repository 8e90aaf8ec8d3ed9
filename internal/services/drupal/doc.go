// Package drupal is a small read-only client for the Drupal REST endpoints
// used while bagging a node: the node itself, its media list, file entities,
// and taxonomy terms, plus streaming downloads of file content.
//
// JSON endpoints are requested with ?_format=json. Response status codes are
// not inspected unless strict status checking is enabled; bodies are decoded
// regardless and a body that does not match the expected shape is reported
// as services.ErrMalformedResponse.
package drupal
