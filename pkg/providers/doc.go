// Package providers contains the cloud provider implementations and the
// registry that maps provider tokens to constructors. Each implementation
// knows its required parameter set and its identifier-generation rule;
// adding a provider means adding one implementation and one registry entry,
// with no changes to existing code.
package providers
