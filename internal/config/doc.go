// Package config provides configuration parsing for mini.
//
// The configuration is stored in mini.json (or mini.yaml) at the project
// root. Every field is optional; missing values take the defaults of the
// idle loop, the engine and the server.
//
// # Configuration File Structure
//
//	{
//	  "scheduler": {
//	    "frameInterval": "16ms",
//	    "frameBudget": "10ms",
//	    "yieldThreshold": "1ms",
//	    "debugHooks": true
//	  },
//	  "server": {
//	    "host": "localhost",
//	    "port": 8080,
//	    "readTimeout": "60s",
//	    "metricsPath": "/metrics"
//	  },
//	  "snapshot": {
//	    "dir": ".mini/snapshots",
//	    "s3": {"bucket": "", "prefix": "", "region": ""}
//	  },
//	  "tracing": {"tracerName": "mini"}
//	}
//
// MINI_HOST, MINI_PORT and MINI_DEBUG_HOOKS override the file.
//
// # Usage
//
//	cfg, err := config.Resolve(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Println("Address:", cfg.Address())
package config
