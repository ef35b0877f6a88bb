package metal

// LibraryName is the compiled kernel library looked up in the artifacts directory.
const LibraryName = "tensor_ops.metallib"
