// Package allocation distributes examiners over students under per-examiner
// capacity limits.
//
// Everything here is pure and operates on a roster snapshot handed in by the
// caller: the capacity calculator, the greedy least-loaded engine, the
// read-only validation gate and the single-slot snapshot store used for undo.
// Persistence lives behind services.AllocationStore.
package allocation
