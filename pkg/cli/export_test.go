package cli

var (
	PrintRoutes = printRoutes
	WriteExport = writeExport
)
