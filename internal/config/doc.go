// Package config provides configuration parsing for the reconcile tools.
//
// The configuration is stored in reconcile.json. Missing fields keep their
// defaults, so an empty object is a valid file.
//
// # Configuration File Structure
//
//	{
//	  "name": "todo-preview",
//	  "server": {
//	    "host": "localhost",
//	    "port": 7070,
//	    "readTimeout": "10s",
//	    "writeTimeout": "10s",
//	    "maxMessageSize": 65536
//	  },
//	  "metrics": {
//	    "enabled": true,
//	    "namespace": "reconcile",
//	    "path": "/metrics"
//	  },
//	  "tracing": {
//	    "tracerName": "github.com/vango-dev/reconcile"
//	  },
//	  "log": {
//	    "level": "info",
//	    "format": "text"
//	  }
//	}
//
// # Usage
//
//	cfg, err := config.Load(".")
//	if err != nil {
//	    return err
//	}
//	fmt.Println(cfg.Address())
package config
