//go:build windows

package webgpu

// WGSL compute shaders for the backend contract.
// Using string constants instead of embed for simplicity.

// binaryShader builds an element-wise shader computing result = expr(a, b).
func binaryShader(expr string) string {
	return `
@group(0) @binding(0) var<storage, read> a: array<f32>;
@group(0) @binding(1) var<storage, read> b: array<f32>;
@group(0) @binding(2) var<storage, read_write> result: array<f32>;

struct Params {
    size: u32,
}
@group(0) @binding(3) var<uniform> params: Params;

@compute @workgroup_size(256)
fn main(
    @builtin(global_invocation_id) global_id: vec3<u32>,
    @builtin(num_workgroups) groups: vec3<u32>
) {
    let idx = global_id.x + global_id.y * groups.x * 256u;
    if (idx < params.size) {
        result[idx] = ` + expr + `;
    }
}
`
}

var (
	addShader = binaryShader("a[idx] + b[idx]")
	subShader = binaryShader("a[idx] - b[idx]")
	mulShader = binaryShader("a[idx] * b[idx]")
	divShader = binaryShader("a[idx] / b[idx]")
)

// unaryShader builds an element-wise shader computing result = expr(x).
// params.value carries the scalar operand of pow.
func unaryShader(expr string) string {
	return `
@group(0) @binding(0) var<storage, read> input: array<f32>;
@group(0) @binding(1) var<storage, read_write> result: array<f32>;

struct Params {
    size: u32,
    value: f32,
}
@group(0) @binding(2) var<uniform> params: Params;

@compute @workgroup_size(256)
fn main(
    @builtin(global_invocation_id) global_id: vec3<u32>,
    @builtin(num_workgroups) groups: vec3<u32>
) {
    let idx = global_id.x + global_id.y * groups.x * 256u;
    if (idx < params.size) {
        let x = input[idx];
        result[idx] = ` + expr + `;
    }
}
`
}

var (
	expShader  = unaryShader("exp(x)")
	sqrtShader = unaryShader("sqrt(x)")
	// WGSL pow is undefined for x < 0, so integer powers of negative inputs
	// go through |x| with the sign restored for odd powers.
	powShader = unaryShader(`select(
            pow(abs(x), params.value) * select(1.0, -1.0, abs(params.value % 2.0) == 1.0),
            pow(x, params.value),
            x >= 0.0 || fract(params.value) != 0.0)`)
)

// matmulShader performs matrix multiplication: C = A @ B.
// A is [M, K], B is [K, N], C is [M, N]. One invocation per element of C,
// laid out on the same folded grid as the element-wise shaders.
const matmulShader = `
@group(0) @binding(0) var<storage, read> a: array<f32>;
@group(0) @binding(1) var<storage, read> b: array<f32>;
@group(0) @binding(2) var<storage, read_write> result: array<f32>;

struct Params {
    M: u32,  // rows of A and C
    K: u32,  // cols of A, rows of B
    N: u32,  // cols of B and C
}
@group(0) @binding(3) var<uniform> params: Params;

@compute @workgroup_size(256)
fn main(
    @builtin(global_invocation_id) global_id: vec3<u32>,
    @builtin(num_workgroups) groups: vec3<u32>
) {
    let idx = global_id.x + global_id.y * groups.x * 256u;
    if (idx >= params.M * params.N) {
        return;
    }
    let row = idx / params.N;
    let col = idx % params.N;

    var sum: f32 = 0.0;
    for (var k: u32 = 0u; k < params.K; k = k + 1u) {
        sum = sum + a[row * params.K + k] * b[k * params.N + col];
    }
    result[row * params.N + col] = sum;
}
`

// globalSumShader reduces each workgroup's slice to one partial sum.
const globalSumShader = `
@group(0) @binding(0) var<storage, read> input: array<f32>;
@group(0) @binding(1) var<storage, read_write> result: array<f32>;

struct Params {
    size: u32,
}
@group(0) @binding(2) var<uniform> params: Params;

var<workgroup> shared_data: array<f32, 256>;

@compute @workgroup_size(256)
fn main(
    @builtin(global_invocation_id) global_id: vec3<u32>,
    @builtin(local_invocation_id) local_id: vec3<u32>,
    @builtin(workgroup_id) workgroup_id: vec3<u32>,
    @builtin(num_workgroups) groups: vec3<u32>
) {
    let tid = local_id.x;
    let gid = global_id.x + global_id.y * groups.x * 256u;

    if (gid < params.size) {
        shared_data[tid] = input[gid];
    } else {
        shared_data[tid] = 0.0;
    }
    workgroupBarrier();

    for (var s: u32 = 128u; s > 0u; s = s >> 1u) {
        if (tid < s) {
            shared_data[tid] = shared_data[tid] + shared_data[tid + s];
        }
        workgroupBarrier();
    }

    if (tid == 0u) {
        result[workgroup_id.x + workgroup_id.y * groups.x] = shared_data[0];
    }
}
`
