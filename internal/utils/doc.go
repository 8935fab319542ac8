// Package utils provides shared low-level helpers used by the provider and
// service packages: synchronous HTTP request helpers with observability
// events ([DoPostSync], [DoGetSync], [DoRequest]), body cleanup
// ([CloseWithLog]), string helpers for log output ([TruncateString],
// [JSONToString]) and pointers ([Ptr]).
package utils
