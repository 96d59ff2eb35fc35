// Package auth manages the Google OAuth2 credential lifecycle for the
// server: the persistent token store on disk, the interactive
// authorization-code flow against Google's OAuth endpoints, silent
// refresh of expired access tokens, and the serialized manager that
// hands out valid credentials to API clients.
package auth
