package commands

const (
	_etc = "/usr/local/etc/com.crossingstv.sales-report"

	DEFAULT_CONFIG  = _etc + "/config.json"
	DEFAULT_WORKERS = 4
)
