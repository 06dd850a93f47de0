package sweep

//go:generate mockgen -destination "mock_sweep_test.go" -package $GOPACKAGE -write_package_comment=false github.com/miretskiy/mm1ksim/sweep Sink
