package utils

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// 在parentPath下创建唯一的临时子目录
func GetUniqSubDir(parentPath string) (path string, err error) {
	path = filepath.Join(parentPath, uuid.NewString())
	err = os.MkdirAll(path, os.ModePerm)
	return
}

func GetFilenameWithoutExt(path string) (name string) {
	name = filepath.Base(path)
	name = strings.TrimSuffix(name, filepath.Ext(path))
	return
}

// 生成输出文件路径：
// workDir为空时为 <输入文件名>_<postfix>.<ext>（与第一个输入同目录）；
// 否则为 <workDir>/<各输入文件名以_连接><postfix>.<ext>
func OutputPath(inputs []string, postfix, ext, workDir string) string {
	ext = strings.TrimPrefix(ext, ".")
	if len(inputs) == 0 {
		return filepath.Join(workDir, postfix+"."+ext)
	}
	if workDir == "" {
		base := strings.TrimSuffix(inputs[0], filepath.Ext(inputs[0]))
		return base + "_" + strings.TrimPrefix(postfix, "_") + "." + ext
	}
	names := make([]string, len(inputs))
	for i, in := range inputs {
		names[i] = GetFilenameWithoutExt(in)
	}
	return filepath.Join(workDir, strings.Join(names, "_")+postfix+"."+ext)
}

func EnsureDir(path string) error {
	if path == "" || path == "." {
		return nil
	}
	return os.MkdirAll(path, os.ModePerm)
}

// 创建文件所在目录
func EnsureParentDir(file string) error {
	return EnsureDir(filepath.Dir(file))
}
