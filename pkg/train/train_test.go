package train

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/cyclopcam/logs"
	"github.com/stretchr/testify/require"
)

func TestDefaultRegistry(t *testing.T) {
	r := DefaultRegistry("datasets")
	require.Len(t, r.Datasets, 10)
	require.NoError(t, r.Validate())

	ds, ok := r.Find("vidor_test_32")
	require.True(t, ok)
	require.Equal(t, Dataset{
		Name:        "vidor_test_32",
		Annotations: "datasets/vidor/d2_test_32.json",
		ImageRoot:   "datasets/vidor/frames@32",
	}, ds)

	ds, ok = r.Find("vidor_ilsvrc_train2013")
	require.True(t, ok)
	require.Equal(t, "datasets/ILSVRC2015/Data/DET/train/ILSVRC2013_train", ds.ImageRoot)

	_, ok = r.Find("vidor_train_8")
	require.False(t, ok)
}

func TestRegistrySaveLoadCheck(t *testing.T) {
	root := t.TempDir()
	r := DefaultRegistry(filepath.ToSlash(root))
	filename := filepath.Join(root, "registry", "datasets.json")
	require.NoError(t, r.Save(filename))
	loaded, err := LoadRegistry(filename)
	require.NoError(t, err)
	require.Equal(t, r, loaded)

	// Make vidor_train_16 complete
	require.NoError(t, os.MkdirAll(filepath.Join(root, "vidor", "frames@16"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "vidor", "d2_train_16.json"), []byte("{}"), 0644))
	missing := r.Check(logs.NewTestingLog(t))
	require.Len(t, missing, 9)
	require.NotContains(t, missing, "vidor_train_16")
	require.Contains(t, missing, "vidor_test_16")

	dup := filepath.Join(root, "dup.json")
	require.NoError(t, os.WriteFile(dup, []byte(`{"datasets": [
		{"name": "a", "annotations": "a.json", "imageRoot": "a"},
		{"name": "a", "annotations": "b.json", "imageRoot": "b"}
	]}`), 0644))
	_, err = LoadRegistry(dup)
	require.Error(t, err)
}

func TestArgs(t *testing.T) {
	opt := DefaultLaunchOptions()
	opt.ConfigFile = "configs/faster_rcnn_R_50_FPN_3x.yaml"
	opt.Resume = true
	opt.NumGPUs = 4
	opt.Opts = []string{"SOLVER.IMS_PER_BATCH", "16"}
	require.NoError(t, opt.Validate())
	require.Equal(t, []string{
		"tools/train_net.py",
		"--config-file", "configs/faster_rcnn_R_50_FPN_3x.yaml",
		"--resume",
		"--num-gpus", "4",
		"--num-machines", "1",
		"--machine-rank", "0",
		"--dist-url", "auto",
		"SOLVER.IMS_PER_BATCH", "16",
	}, opt.Args())
}

func TestSplitOverrides(t *testing.T) {
	own, overrides := SplitOverrides([]string{"trainnet", "--config-file", "c.yaml", "--", "OUTPUT_DIR", "/runs/vidor 32", "SOLVER.BASE_LR", "0.01"})
	require.Equal(t, []string{"trainnet", "--config-file", "c.yaml"}, own)
	require.Equal(t, []string{"OUTPUT_DIR", "/runs/vidor 32", "SOLVER.BASE_LR", "0.01"}, overrides)

	own, overrides = SplitOverrides([]string{"trainnet", "--config-file", "c.yaml"})
	require.Equal(t, []string{"trainnet", "--config-file", "c.yaml"}, own)
	require.Empty(t, overrides)

	// A value with spaces survives the trip to the child process as a single argument
	opt := DefaultLaunchOptions()
	opt.ConfigFile = "c.yaml"
	_, opt.Opts = SplitOverrides([]string{"trainnet", "--", "OUTPUT_DIR", "/runs/vidor 32"})
	require.NoError(t, opt.Validate())
	args := opt.Args()
	require.Equal(t, "/runs/vidor 32", args[len(args)-1])
}

// The bundled training script reads the registry that Save writes
func TestBundledScriptReadsRegistry(t *testing.T) {
	root := filepath.Join("..", "..")
	launcher, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(DefaultScript)))
	require.NoError(t, err)
	require.Contains(t, string(launcher), "import detprep_datasets")
	require.Contains(t, string(launcher), "register_all()")

	registrar, err := os.ReadFile(filepath.Join(root, "tools", "detprep_datasets.py"))
	require.NoError(t, err)
	require.Contains(t, string(registrar), `REGISTRY_ENV = "`+RegistryEnv+`"`)
	require.Contains(t, string(registrar), "register_coco_instances")

	saved := filepath.Join(t.TempDir(), "registry.json")
	require.NoError(t, DefaultRegistry("datasets").Save(saved))
	raw, err := os.ReadFile(saved)
	require.NoError(t, err)
	for _, key := range []string{"datasets", "name", "annotations", "imageRoot"} {
		require.Contains(t, string(raw), `"`+key+`"`)
		require.Contains(t, string(registrar), `"`+key+`"`)
	}
}

func TestValidate(t *testing.T) {
	bad := []func(o *LaunchOptions){
		func(o *LaunchOptions) { o.ConfigFile = "" },
		func(o *LaunchOptions) { o.NumMachines = 0 },
		func(o *LaunchOptions) { o.MachineRank = 1 },
		func(o *LaunchOptions) { o.NumMachines = 2 },
		func(o *LaunchOptions) { o.Opts = []string{"MODEL.WEIGHTS"} },
	}
	for i, modify := range bad {
		opt := DefaultLaunchOptions()
		opt.ConfigFile = "x.yaml"
		modify(&opt)
		require.Error(t, opt.Validate(), "case %v", i)
	}
}

func TestLaunch(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	dir := t.TempDir()
	script := filepath.Join(dir, "train_net.sh")
	require.NoError(t, os.WriteFile(script, []byte("echo \"$DETPREP_DATASETS $*\"\n"), 0644))

	stdout := &bytes.Buffer{}
	trainer := NewTrainer(logs.NewTestingLog(t), "/data/registry.json")
	trainer.Stdout = stdout
	opt := DefaultLaunchOptions()
	opt.Python = "sh"
	opt.Script = script
	opt.ConfigFile = "c.yaml"
	opt.EvalOnly = true
	require.NoError(t, trainer.Launch(context.Background(), opt))
	require.Equal(t, "/data/registry.json --config-file c.yaml --eval-only --num-gpus 1 --num-machines 1 --machine-rank 0 --dist-url auto\n", stdout.String())

	cmd, err := trainer.Command(opt)
	require.NoError(t, err)
	require.Equal(t, "DETPREP_DATASETS=/data/registry.json sh "+script+" --config-file c.yaml --eval-only --num-gpus 1 --num-machines 1 --machine-rank 0 --dist-url auto", Describe(cmd))
}
