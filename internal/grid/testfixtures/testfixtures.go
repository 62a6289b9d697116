package testfixtures

// This file contains a small two-interconnect network used throughout the tests.
import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"powersimdata/internal/matfile"
)

var tamuFiles = map[string]string{
	"zone.csv": `zone_id,zone_name,state,interconnect,time_zone
201,Washington,WA,Western,ETC/GMT+8
202,Oregon,OR,Western,ETC/GMT+8
301,Far West,TX,Texas,ETC/GMT+6
`,
	"sub.csv": `sub_id,name,interconnect_sub_id,lat,lon,interconnect
1,SubA,1,47.5,-122.3,Western
2,SubB,2,45.5,-122.6,Western
3,SubC,1,31,-102,Texas
`,
	"bus2sub.csv": `bus_id,sub_id,interconnect
10,1,Western
11,2,Western
20,3,Texas
`,
	"bus.csv": `bus_id,type,Pd,Qd,Gs,Bs,zone_id,Vm,Va,baseKV,loss_zone,Vmax,Vmin,interconnect,eia_id
10,3,100,0,0,0,201,1,0,230,1,1.1,0.9,Western,
11,1,50,0,0,0,202,1,0,230,1,1.1,0.9,Western,
20,1,80,0,0,0,301,1,0,345,1,1.1,0.9,Texas,12345
`,
	"plant.csv": `plant_id,bus_id,Pg,Pmax,Pmin,status,type,interconnect,GenFuelCost
101,10,10,50,0,1,solar,Western,0
102,11,20,200,0,1,wind,Western,0
103,11,30,300,0,1,ng,Western,2.5
104,20,40,400,0,1,coal,Texas,1.8
`,
	"gencost.csv": `plant_id,type,startup,shutdown,n,c2,c1,c0,interconnect
101,2,0,0,3,0,0,0,Western
102,2,0,0,3,0,0,0,Western
103,2,0,0,3,0.01,20,100,Western
104,2,0,0,3,0.02,15,80,Texas
`,
	"branch.csv": `branch_id,from_bus_id,to_bus_id,r,x,b,rateA,status,branch_device_type,interconnect
1,10,11,0.01,0.1,0,500,1,Line,Western
`,
	"dcline.csv": `dcline_id,from_bus_id,to_bus_id,status,Pmin,Pmax,from_interconnect,to_interconnect
0,11,20,1,-100,100,Western,Texas
`,
}

// WriteTAMU writes the fixture network as TAMU CSV tables into dir.
func WriteTAMU(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.WithStack(err)
	}
	for name, body := range tamuFiles {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			return errors.Wrapf(err, "write %s", name)
		}
	}
	return nil
}

// REISECase returns the Western part of the fixture as a REISE case.
func REISECase() []*matfile.Var {
	mpc := matfile.NewStruct("mpc",
		matfile.NewMatrix("bus", [][]float64{
			{10, 3, 100, 0, 0, 0, 201, 1, 0, 230, 1, 1.1, 0.9},
			{11, 1, 50, 0, 0, 0, 202, 1, 0, 230, 1, 1.1, 0.9},
		}),
		matfile.NewMatrix("gen", [][]float64{
			{10, 10, 0, 0, 0, 1, 100, 1, 50, 0},
			{11, 20, 0, 0, 0, 1, 100, 1, 200, 0},
			{11, 30, 0, 0, 0, 1, 100, 1, 300, 0},
		}),
		matfile.NewMatrix("branch", [][]float64{
			{10, 11, 0.01, 0.1, 0, 500, 0, 0, 0, 0, 1, -360, 360},
		}),
		matfile.NewMatrix("gencost", [][]float64{
			{2, 0, 0, 3, 0, 0, 0},
			{2, 0, 0, 3, 0, 0, 0},
			{2, 0, 0, 3, 0.01, 20, 100},
		}),
		matfile.NewCellColumn("genfuel", []string{"solar", "wind", "ng"}),
		matfile.NewMatrix("genid", [][]float64{{101}, {102}, {103}}),
		matfile.NewMatrix("branchid", [][]float64{{1}}),
	)
	storage := matfile.NewStruct("mpc_storage",
		matfile.NewStruct("storage",
			matfile.NewMatrix("StorageData", [][]float64{
				{1, 50, 50, 50, 0, 20, 0, 100, 0.9, 0.9, 0, 1, 60, 40, 4},
			}),
		),
	)
	return []*matfile.Var{mpc, storage}
}

// WriteREISE writes REISECase to path.
func WriteREISE(path string) error {
	return matfile.WriteFile(path, REISECase()...)
}
