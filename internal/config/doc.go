// Package config defines the workflow configuration model and its HCL
// loader. The model is the single source of truth for the app wiring:
// where the graph lives, where results and archives go, which archive
// backend to use, and how to reach the browser driver.
//
// Configuration files may reference process environment variables through
// the `env` object, e.g. `redis_addr = env.REDIS_ADDR`.
package config
