package driver

import (
	"fmt"
	"os"
	"os/exec"
)

// compile invokes the host C++ compiler on cppPath, producing the
// executable at binPath. The compiler is CXX if set, else the first of
// g++/c++ found on PATH -- the same LookPath-with-env-override shape the
// teacher leaves to the OS for locating an interpreter, generalized here
// to locating a toolchain.
func compile(cppPath, binPath string, optimize bool) error {
	cxx := os.Getenv("CXX")
	if cxx == "" {
		var err error
		cxx, err = findCompiler()
		if err != nil {
			return err
		}
	}

	args := []string{"-std=c++11", cppPath, "-o", binPath}
	if optimize {
		args = append(args, "-O3", "-DNDEBUG")
	} else {
		args = append(args, "-O0", "-g")
	}

	cmd := exec.Command(cxx, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("pythonc: %s failed: %w", cxx, err)
	}
	return nil
}

// findCompiler locates a usable C++ compiler when CXX isn't set.
func findCompiler() (string, error) {
	for _, name := range []string{"g++", "c++"} {
		if path, err := exec.LookPath(name); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("pythonc: no C++ compiler found on PATH (set CXX)")
}

// runBinary executes the compiled program, forwarding stdio and args the
// way the compiled Python script's sys.argv is populated.
func runBinary(binPath string, args []string) error {
	abs := binPath
	if cwd, err := os.Getwd(); err == nil {
		abs = cwd + string(os.PathSeparator) + binPath
	}
	cmd := exec.Command(abs, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Stdin = os.Stdin
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("pythonc: program exited with error: %w", err)
	}
	return nil
}
