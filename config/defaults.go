package config

import "time"

// defaultConfig is the default configuration for this project
var defaultConfig = config{
	DevelopmentMode: false,
	UserAgent:       "kotone/1.0 ( https://github.com/kotone-fm/kotone )",
	Providers: providers{
		Storage: "mariadb",
		Blob:    "fs",
		Lookup:  "musicbrainz",
	},
	Database: database{
		DriverName: "mysql",
		DSN:        "kotone@unix(/run/mysqld/mysqld.sock)/kotone?parseTime=true",
	},
	Mongo: mongo{
		URI:      "mongodb://127.0.0.1:27017",
		Database: "kotone",
		Timeout:  Duration(time.Second * 10),
	},
	Blob: blob{
		Path: "/kotone/music",
	},
	Website: website{
		WebsiteAddr:     MustParseListenAddr("localhost:3241"),
		MaxUploadSize:   (1 << 20) * 100, // 100MiB
		UploaderHeader:  "x-proxy-user",
		UploadRateLimit: 10,
	},
	Ingest: ingest{
		ScratchDir: "",
		FingerprintTools: []string{
			"fpcalc",
			"/usr/bin/fpcalc",
			"/usr/local/bin/fpcalc",
			"/opt/homebrew/bin/fpcalc",
		},
		FingerprintTimeout: Duration(time.Second * 30),
		LookupTimeout:      Duration(time.Second * 10),
	},
	MusicBrainz: musicbrainz{
		Endpoint:   "https://musicbrainz.org/ws/2/",
		MinScore:   90,
		MaxRetries: 3,
	},
	Telemetry: telemetry{
		Use:      false,
		Endpoint: "localhost:4317",
		Pyroscope: pyroscope{
			Endpoint:   "",
			UploadRate: Duration(time.Second * 15),
		},
	},
}
