/*
Package authsdk provides a client SDK for the CRM authentication service.

# Overview

Every CRM endpoint answers with the same JSON envelope:

	{"code": 0, "message": "success", "data": {...}, "timestamp": 1700000000000}

The SDK unwraps it and returns the data, or an *APIError carrying the HTTP
status and the envelope message.

# Usage

	client := authsdk.NewSDKClient("http://localhost:8080")

	login, err := client.Login(ctx, "admin", "admin123")
	if authsdk.IsUnauthorized(err) {
		// wrong username or password
	}

	me, err := client.Me(ctx, login.Token)
	ok, err := client.Validate(ctx, login.Token)

Tokens are stateless. Logout is a courtesy call; the token remains valid until
it expires and the caller is responsible for discarding it.

# Through the gateway

When BaseURL points at the gateway, set AuthPrefix to the route the gateway
forwards to the auth service:

	client := authsdk.NewSDKClient("http://gateway:8000")
	client.AuthPrefix = "/api"
*/
package authsdk
