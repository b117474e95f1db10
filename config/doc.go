// Package config loads request files: a request saved to disk in JSON, YAML
// or TOML, optionally with its timeout, a {{variable}} environment and the
// checks to run on the response.
//
// Basic Usage:
//
//	file, err := config.LoadRequestFile("create-user.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	req := file.Resolve(map[string]string{"token": os.Getenv("TOKEN")})
//	resp, err := client.Do(ctx, req, file.Timeout)
//
// A request file either wraps the request:
//
//	req:
//	  method: POST
//	  url: "{{base}}/users"
//	  headers:
//	    - {key: Authorization, value: "Bearer {{token}}", enabled: true}
//	timeout:
//	  connect: 5
//	environment:
//	  base: https://api.example.com
//
// or is the bare request itself. LoadRequestFile validates the result and
// reports every problem at once as ValidationErrors.
package config
