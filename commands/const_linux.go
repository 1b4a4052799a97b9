package commands

const (
	_etc = "/usr/local/etc/sales-report"

	DEFAULT_CONFIG  = _etc + "/config.json"
	DEFAULT_WORKERS = 4
)
